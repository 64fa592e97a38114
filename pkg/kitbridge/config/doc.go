/*
Package config reads kit settings.

# Overview

Config wraps a map[string]any and reads values back in string form, the
way hosts hand settings to the kit. Numbers and booleans decoded from YAML
or JSON are formatted.

	cfg := config.FromStrings(map[string]string{
	    "projectId":     "12345",
	    "eventInterval": "30",
	})

	interval, _ := cfg.Lookup("eventInterval") // "30"

# Kit Settings

ParseSettings extracts the four recognized options:

  - userIdField: customerId | email | mpid | deviceApplicationStamp
  - eventInterval: event dispatch interval in whole seconds
  - datafileInterval: datafile download interval in whole seconds
  - projectId: destination project key

Unparseable intervals are logged and skipped.

# File Loading

The CLI loads settings from YAML or JSON files:

	cfg, err := config.FromFile("settings.yaml")
*/
package config
