// Package progress streams session progress to browsers over websockets.
//
// A page opens /ws?session=<id> before it calls the run API with the same
// id; the session then publishes load and render events that the hub fans
// out to every socket subscribed to that id.
package progress
