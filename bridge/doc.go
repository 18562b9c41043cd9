// Package bridge moves parameter changes from the control surface to the synthesis engine
// and engine snapshots back, over one non-blocking duplex connection.
//
// The Bridge owns the connection, the consuming end of the intent queue, and the
// producing end of the snapshot queue. Every cycle it makes one non-blocking receive,
// drains all pending intents onto the connection, then sleeps for the poll interval.
//
// Lifecycle:
//
//	intentsTx, intentsRx := queue.New[messages.Intent]()
//	snapsTx, snapsRx := queue.New[messages.Patch]()
//	b := bridge.New(conn, intentsRx, snapsTx)
//	b.Start()
//	// ... UI sends on intentsTx and polls snapsRx ...
//	intentsTx.Close() // or snapsRx.Close()
//	<-b.Done()
//
// There is no other stop signal: the bridge ends when either peer closes its end of a
// queue, and then closes the connection.
package bridge
