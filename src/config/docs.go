// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the monitor configuration.
//
// A configuration file is JSON or YAML, chosen by extension, and is checked
// against an embedded [JSON Schema] before use. Keys that are not set keep
// their defaults. A minimal file:
//
//	{
//	  "urlsToCheck": ["https://example.com", "https://example.org:8443"],
//	  "defaults": { "timeoutSeconds": 10, "concurrency": 1, "warnDays": 30 },
//	  "logging": { "level": "info", "directory": "logs" }
//	}
//
// JSON keys match case-insensitively, so files written for earlier releases
// that use "UrlsToCheck" keep working.
//
// [JSON Schema]: https://json-schema.org
package config
