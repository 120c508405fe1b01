// Package config loads runtime configuration for pinctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or PINKEEPER_CONFIG.
//  3. Command-line flags, which override earlier values.
//  4. PINKEEPER_TOKEN, only when no access token was configured above.
//
// Supported flags
//
//	-a string   address:port of the pinkeeper gRPC endpoint
//	-t string   access token of the signed-in session
//	-w int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50061",
//	  "access_token": "eyJ...",
//	  "request_timeout": "5s"
//	}
package config
