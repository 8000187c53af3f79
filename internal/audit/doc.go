// Package audit delivers session lifecycle events to sinks off the calling
// goroutine.
//
// The [Dispatcher] owns a bounded queue and one delivery goroutine. When
// the queue is full it either blocks the emitter until the context ends or
// drops the event and counts it, depending on [Config.DropIfFull]. Which
// events to emit is decided by the engine and flows, not here.
package audit
