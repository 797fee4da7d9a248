package review

// ErrorKind classifies failures reported to the presenter
type ErrorKind int

const (
	DirectoryUnavailable ErrorKind = iota
	FileUnreadable
	DeletionFailed
	ScanInProgress
	ScanCancelled
	InvalidOperation
)

// String returns a human-readable kind name
func (k ErrorKind) String() string {
	switch k {
	case DirectoryUnavailable:
		return "directory unavailable"
	case FileUnreadable:
		return "file unreadable"
	case DeletionFailed:
		return "deletion failed"
	case ScanInProgress:
		return "scan in progress"
	case ScanCancelled:
		return "scan cancelled"
	case InvalidOperation:
		return "invalid operation"
	default:
		return "unknown"
	}
}

// Presenter receives notifications from the scan and review workflow.
// All calls are made on the goroutine that drives the controller.
type Presenter interface {
	OnScanStarted()
	OnScanComplete(groupCount int)
	OnGroupPresented(filenames []string, remaining int)
	OnFinished()
	OnError(kind ErrorKind, detail string)
}

// NopPresenter ignores every notification
type NopPresenter struct{}

func (NopPresenter) OnScanStarted() {}
func (NopPresenter) OnScanComplete(int) {}
func (NopPresenter) OnGroupPresented([]string, int) {}
func (NopPresenter) OnFinished() {}
func (NopPresenter) OnError(ErrorKind, string) {}
