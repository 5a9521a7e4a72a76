// Package mocks provides mock implementations for testing the chat relay.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gen := mocks.NewMockGenerator(ctrl)
//	gen.EXPECT().Stream(gomock.Any(), gomock.Any()).Return(seq)
package mocks

// Generate mock for Generator interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=generator_mock.go github.com/target/chat-relay/internal/ports Generator
