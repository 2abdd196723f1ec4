// Package query is the client-side read cache and mutation dispatcher.
//
// # Reads
//
// Every read is identified by a structural [Key] and configured with [Options]: the fetch function,
// a fresh window (StaleTime) and whether the read is disabled because a required parameter is
// missing. Within the fresh window repeated reads return cached data without a network call.
//
// [Fetch] waits for data when the entry is not fresh. [Query] serves stale data immediately and
// refetches in the background (stale-while-revalidate). [Refetch] ignores freshness and backs the
// manual "Try again" action; there is no automatic retry.
//
// Concurrent reads of the same key share one in-flight request. Each waiter still honours its own
// context: giving up stops that waiter, not the request.
//
// # Ordering
//
// Each entry carries a generation that changes on [Cache.SetData], [Cache.Invalidate],
// [Cache.Remove] and [Cache.Clear]. A response is committed only if the generation it started with
// is still current, so a slow response can never overwrite newer state.
//
// # Writes
//
// A [Mutation] performs a write, then applies direct cache writes, then invalidates key prefixes.
// [Optimistic] keeps local guesses separate from confirmed values; confirmed always wins.
package query
