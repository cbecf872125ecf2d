// Package bridge implements the UI-side orchestrator of the tray
// process protocol.
//
// The Service multiplexes every terminal session over one transport
// connection. Outbound, it encodes catalog requests, awaits the
// correlated reply and decodes it; inbound, it classifies unsolicited
// envelopes by type tag and routes output chunks and exit notices to
// the session registry. Slow-changing facts (username, mosh/ssh
// executable paths) are fetched from the peer at most once per process
// lifetime and served from memory after that.
//
// Failure semantics follow two tiers:
//   - correctness-critical operations (CreateTerminal, ResizeTerminal,
//     SaveTextFile, GetAvailablePort, SetToggleWindowKeyBindings,
//     CloseTerminal) surface transport and peer failures to the caller,
//     carrying peer-supplied error text verbatim when present;
//   - best-effort facts (GetUserName, GetMoshSSHPath) log failures and
//     degrade to an absent value instead of propagating.
//
// A circuit breaker fronts the transport so a dead tray process fails
// callers fast; it refuses calls while open but never retries.
package bridge
