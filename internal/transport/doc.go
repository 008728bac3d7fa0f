// Package transport carries envelopes between named peers on one host.
//
// Every peer listens on a Unix domain socket named after its identity inside
// a shared directory. A request is a frame tagged with a random id; the
// receiving peer answers with a reply frame echoing that id and a numeric
// value. Pushes use the same path and simply ignore the value.
package transport
