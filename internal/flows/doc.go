// Package flows contains the session lifecycle orchestrators behind the
// Engine: RunInitialize, RunLogin and RunLogout.
//
// Each flow takes a dependency struct of plain functions and returns the
// session user it produced. Flows never hold state between calls; the
// Engine owns the session snapshot and commits what a flow returns.
//
// Flows must not import the root package.
package flows
