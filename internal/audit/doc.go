// Package audit posts decision events to the compliance webhook. The sink is
// advisory: the store commit is the durable fact and a delivery failure is
// logged and swallowed, never rolled back into the lifecycle.
package audit
