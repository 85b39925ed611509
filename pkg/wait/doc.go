// Package wait tracks named loading states.
//
// A Registry counts, per loader name, how many call sites currently consider
// that operation in progress. Start returns a Handle bound to one increment;
// releasing the handle (or calling Stop with the name) undoes it. Counts never
// go negative and an entry disappears as soon as its count reaches zero, so
// AnyLoading is simply "is anything tracked".
//
// Observers subscribe with Subscribe or OnAnyLoading and are notified on the
// goroutine that performed the change:
//
//	reg := wait.New()
//	cancel := reg.OnAnyLoading(func(busy bool) { spinner.Toggle(busy) })
//	defer cancel()
//
//	h := reg.Start("fetch-user")
//	defer h.Release()
//
// The registry is meant to be constructed once in the composition root and
// passed to consumers explicitly; there is no package-level instance.
package wait
