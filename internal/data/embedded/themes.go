// Package embedded provides access to data files compiled into mrdoc.
package embedded

import _ "embed"

// DefaultThemeData contains the embedded default theme YAML data.
//
//go:embed themes/default.yaml
var DefaultThemeData []byte

// DarkThemeData contains the embedded dark theme YAML data.
//
//go:embed themes/dark.yaml
var DarkThemeData []byte

// PlainThemeData contains the embedded plain theme YAML data.
//
//go:embed themes/plain.yaml
var PlainThemeData []byte
