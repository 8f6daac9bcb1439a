// Package config defines the format-agnostic source configuration model.
// A Loader (see internal/hclcfg) translates on-disk text into this model
// once; the compiler, lint engine, and resolver only ever consume the model
// and never re-parse raw text.
package config
