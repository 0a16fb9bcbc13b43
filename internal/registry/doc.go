// Package registry resolves and caches the set of plants and their
// devices.
//
// Plant and device identities change rarely, while the northbound API
// is heavily rate limited, so the resolved set is cached in a local
// JSON snapshot. The cache is read at most once and written at most
// once per run:
//
//   - A usable snapshot short-circuits the remote calls entirely.
//   - A malformed snapshot is logged and ignored; resolution falls
//     back to the remote source and overwrites the file.
//   - The file is never deleted here. Delete it to force a refresh.
package registry
