// Package service runs the foreground loop that ties the host link, the
// message dispatcher, the transceiver and the local responder together.
//
// Service.Run is the only goroutine that touches the dispatcher, the model
// registry and the responder. Other goroutines reach it through channels:
//
//   - host transports call Submit with each decoded host message
//   - the transceiver posts completions to the CompletionQueue
//   - the simulated bus reaches the local responder through LocalEndpoint
//
// A task ticker drives model timers such as the lamp strike delay.
//
// Example usage:
//
//	svc, err := service.New(service.Config{
//		Registry:    reg,
//		Simulator:   sim,
//		Completions: completions,
//		StartModel:  devices.MovingLightID,
//	})
//	go sim.Run(ctx)
//	err = svc.Run(ctx)
package service
