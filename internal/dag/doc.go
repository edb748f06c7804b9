// Package dag provides the directed acyclic graph used to order node
// instances by their declared requirements before the operation list is
// emitted. The sort is stable: independent nodes keep their declaration
// order.
package dag
