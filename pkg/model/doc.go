// Package model defines the device-model contract and the registry that
// switches between models at runtime.
//
// Exactly one model is active at a time. The registry owns the shared
// Responder (UID, mute state, encoder) and hands it to a model on
// activation; the model loads its Definition into it and answers requests,
// usually by delegating to the responder.
package model
