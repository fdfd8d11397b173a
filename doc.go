// Package crate is a name-keyed dependency injection container.
//
// A Factory turns a map of definitions into a Container. A definition is a
// plain value, a factory function or a constructor, optionally carrying
// injection metadata:
//
//	c := crate.NewFactory().Make(crate.Definitions{
//	    "config": map[string]any{"apiUrl": "https://example.com"},
//	    "logger": func(config map[string]any) *Logger {
//	        return NewLogger(config["apiUrl"].(string))
//	    },
//	    "Client": crate.Constructor(NewClient,
//	        crate.InjectParam("url", "config.apiUrl", "http://localhost"),
//	        crate.InjectNewInstance(),
//	    ),
//	})
//
//	logger, err := crate.Get[*Logger](c, "logger")
//	client, err := crate.Get[*Client](c, "client")
//
// Services are resolved on first access and memoized for the lifetime of the
// container. Factories without named parameters receive a Resolver over the
// whole container; factories with named parameters get the services with
// those names. Injectable definitions read each argument from a dot-delimited
// path and fall back to a default.
package crate
