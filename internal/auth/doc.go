// Package auth signs in to Google Keep, preferring a stored session token
// over asking for the account password.
//
// The flow is:
//
//  1. Look up the master token stored for the account.
//  2. If present, resume the session with it. Success ends the flow.
//  3. Otherwise, or when resuming fails, ask the CredentialProvider for the
//     password once, log in, and store the new master token.
//
// Login reports which path was taken as an Outcome, so callers branch on
// the result instead of on errors. Bad credentials are returned as an error
// and never retried.
package auth
