// Package lifecycle drives review records from pending to a terminal
// decision. Records take exactly one transition; the store's transactional
// move is the commit point, and audit/notification fan-out happens after it.
package lifecycle
