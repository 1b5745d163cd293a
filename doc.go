// Package yetichat logs users in and out of a CometChat application and keeps
// a single authoritative view of who is logged in.
//
// Components:
//   - Gateway wraps the chat platform session primitives (see the
//     provider/cometchat package for a REST backed Platform). It initializes
//     once, turns platform error codes into user facing messages and makes a
//     repeated login of the same uid a no-op.
//   - Provisioner creates users through the CometChat management API. An
//     existing uid is reported as ProvisionResult{Created: false}, not as an
//     error, so login can provision on a best effort basis.
//   - Orchestrator sequences validation, provisioning and login, and publishes
//     every AuthState change to subscribers in registration order. A panicking
//     subscriber is logged and does not affect the others.
//
// Auth state invariants:
//   - IsAuthenticated is true exactly when User is set.
//   - An authenticated state never carries an Error.
//   - Login and Register publish a loading state first and a terminal state
//     last.
//
// Activity sinks:
//   - ActivitySink receives login, registration, logout and provisioning
//     events. Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication. The activitymap
//     package normalizes events for downstream systems.
package yetichat
