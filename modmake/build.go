package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	pricecryptVersion = "0.1.0"
)

// Builds pricecrypt for the platforms bidders and exchanges typically run on.
var releasePlatforms = [][2]string{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "arm64"},
	{"windows", "amd64"},
}

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())
	// The known vector and tamper tests guard the wire format, so they gate every build.
	b.Test().Does(Go().TestAll())

	pricecrypt := NewAppBuild("pricecrypt", "cmd/pricecrypt", pricecryptVersion)
	pricecrypt.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", pricecryptVersion).
			CgoEnabled(false)
	})
	for _, p := range releasePlatforms {
		pricecrypt.Variant(p[0], p[1])
	}
	b.ImportApp(pricecrypt)

	b.Execute()
}
