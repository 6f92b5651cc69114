// Package pager provides offset and keyset (cursor) pagination primitives
// that do not depend on a particular store.
//
// Overview
//
// pager implements two paging modes over the same filter and sort pipeline:
//   - OffsetPager: SKIP/LIMIT paging with a total count and page numbers. Good
//     for "jump to page N" screens, unstable under concurrent writes.
//   - CursorPager: keyset paging. Each page is fetched with a seek predicate
//     built from the last record the client saw, so pages stay consistent
//     while records are inserted or deleted, and deep pages cost as much as
//     the first one. Requires a deterministic ordering ending with a unique
//     column (the tie-breaker).
//
// Key concepts
//   - BuildFilter: turns allow-listed query parameters into a Filter.
//   - SortRules / Orderings: multi-column ordering with explicit directions,
//     always closed by the tie-breaker.
//   - Cursor: opaque base64url token bound to the orderings it was minted for.
//   - Executor: the store adapter. See the gormexec, mongoexec and memexec
//     packages.
//   - Endpoint: wires the above together for one list endpoint and returns the
//     transport envelopes built by AssembleOffset and AssembleCursor.
package pager
