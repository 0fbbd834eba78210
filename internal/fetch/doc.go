// Package fetch provides the shared HTTP plumbing for source adapters:
// a paced, retrying GET client for plain pages and a bounded scripted
// browser session for pages that only render client-side.
package fetch
