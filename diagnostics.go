package snestile

import (
	"log"

	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// Diagnostics collects everything noteworthy about a conversion that
// didn't stop it.
type Diagnostics struct {
	// Violations lists tiles using colors from more than one partition.
	Violations []tile.Violation

	RequestedDedupe tile.Mode
	EffectiveDedupe tile.Mode

	// ColorZeroInserted is true if a transparent entry was added at
	// palette slot 0.
	ColorZeroInserted bool

	// Stats describes the written tilemap, nil for sprites.
	Stats *tilemap.Stats

	Warnings []string
}

// Downgraded returns true if the requested dedupe mode was replaced by a
// weaker one for the background role.
func (d *Diagnostics) Downgraded() bool {
	return d.RequestedDedupe != d.EffectiveDedupe && d.EffectiveDedupe != tile.None
}

func (d *Diagnostics) warn(s string) {
	d.Warnings = append(d.Warnings, s)
}

// Log writes the diagnostics for the asset called name to logger.
func (d *Diagnostics) Log(logger *log.Logger, name string) {
	for _, v := range d.Violations {
		logger.Printf("%s: %s", name, v)
	}
	if d.Downgraded() {
		logger.Printf("%s: dedupe mode %s downgraded to %s for backgrounds", name, d.RequestedDedupe, d.EffectiveDedupe)
	}
	if d.ColorZeroInserted {
		logger.Printf("%s: inserted transparent color at slot 0", name)
	}
	for _, w := range d.Warnings {
		logger.Printf("%s: %s", name, w)
	}
	if d.Stats != nil {
		for _, line := range d.Stats.Lines() {
			logger.Printf("%s: map %s", name, line)
		}
	}
}
