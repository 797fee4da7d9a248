package core

import "github.com/lumipallolabs/dupedive/internal/review"

// outbox queues presenter notifications raised while the controller lock
// is held. They are delivered in order once the lock is released, so a
// presenter may query the controller from its callbacks.
type outbox struct {
	pending []func(review.Presenter)
}

func (o *outbox) push(fn func(review.Presenter)) {
	o.pending = append(o.pending, fn)
}

// take returns and clears the queued notifications
func (o *outbox) take() []func(review.Presenter) {
	out := o.pending
	o.pending = nil
	return out
}

func (o *outbox) OnScanStarted() {
	o.push(func(p review.Presenter) { p.OnScanStarted() })
}

func (o *outbox) OnScanComplete(groupCount int) {
	o.push(func(p review.Presenter) { p.OnScanComplete(groupCount) })
}

func (o *outbox) OnGroupPresented(filenames []string, remaining int) {
	o.push(func(p review.Presenter) { p.OnGroupPresented(filenames, remaining) })
}

func (o *outbox) OnFinished() {
	o.push(func(p review.Presenter) { p.OnFinished() })
}

func (o *outbox) OnError(kind review.ErrorKind, detail string) {
	o.push(func(p review.Presenter) { p.OnError(kind, detail) })
}
