// Package devices provides the example device models the responder can run
// as: a moving light with lamp and display parameters, and a single-channel
// dimmer.
package devices
