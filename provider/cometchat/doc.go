// Package cometchat provides a REST backed yetichat.Platform for CometChat.
//
// Use it with yetichat.NewGateway to log users in and out without the
// browser SDK. The session token is kept in a yetichat.SessionStore so a
// persistent store (see the repository package) survives restarts.
package cometchat
