// Package msglog is a leveled logger built around a chainable message
// builder for styled console output.
//
// Key features
//   - Configurable level sets: named severities with ranks, lower is more severe
//   - One MessageBuilder per line, with a method per semantic style
//     (h1, label, value, path, error, ...) and a single Emit at the end
//   - Swappable style tables: ANSI colour, plain, or your own render functions
//   - Threshold gating at emit time; suppressed lines render nothing
//   - Sinks for styled text, zerolog JSON, rolling files (lumberjack),
//     Loggly bulk HTTP and Redis lists, fanned out by a Manager
//
// Typical usage
//
//	svc := msglog.NewService(wd, cfg)
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	log := svc.Emitter("importer")
//	log.Info().Action("Imported").Value(n).Text("rows from").Path(file).Emit()
//	log.Warn().Label("Skipped:").Value(skipped).Comment("duplicates").Emit()
//	log.Debug().H2("Timing").EmitWithTime()
package msglog
