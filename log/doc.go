// Package log provides the leveled logging used across the wikirag pipeline.
//
// Components log through a package-level logger so that ingestion and query
// code paths stay free of logger plumbing:
//
//	log.Warn("embedding failed for %s chunk %d: %v", title, i, err)
//
// The default implementation writes to stderr via the standard library. Hosts
// that already run golog can route wikirag output through it:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[wiki] ")
//	log.SetDefaultLogger(log.NewGologLogger(glogger))
//
// Five levels are supported: Debug, Info, Warn, Error and None. Messages below
// the configured level are dropped before formatting. The NoOpLogger silences
// output entirely, which keeps tests quiet:
//
//	log.SetDefaultLogger(&log.NoOpLogger{})
package log
