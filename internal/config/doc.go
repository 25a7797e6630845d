// Package config loads the weft CLI configuration.
//
// The configuration lives in weft.toml or weft.json in the working
// directory. When both exist, weft.toml wins.
//
// # Configuration File Structure
//
//	demo = "counter"
//
//	[render]
//	slice = "5ms"
//	yieldThreshold = "1ms"
//	keyed = true
//	maxRestarts = 50
//
//	[serve]
//	host = "localhost"
//	port = 8080
//	metrics = true
//
//	[export]
//	dir = "dist"
//	bucket = "my-snapshots"
//	prefix = "weft/"
//	region = "eu-west-1"
//
//	[log]
//	level = "debug"
//	format = "json"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng := engine.New(adapter, cfg.EngineOptions()...)
package config
