// Package services implements the two credential store strategies and their
// profile stores.
//
// LocalStore keeps accounts in the client's SQLite database and answers
// synchronously. RemoteStore delegates to the identity service through a
// client.Client and pushes identity changes to subscribers, including
// session losses it did not initiate.
package services
