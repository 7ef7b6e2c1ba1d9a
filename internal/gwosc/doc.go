// Package gwosc fetches public strain data from the Gravitational Wave Open
// Science Center archive.
//
// The archive serves strain in files of 4096 seconds. A Loader looks up the
// observing run for a GPS interval, asks the archive which files cover it,
// downloads them in parallel and stitches them into one series, filling
// every uncovered sample with NaN:
//
//	client := gwosc.NewClient(cfg.GWOSC.BaseURL, gwosc.WithLogger(logger))
//	loader := gwosc.NewLoader(client, cfg.GWOSC.Runs)
//	strain, err := loader.Load(ctx, gwosc.Descriptor{
//		Interferometer: "L1",
//		Start:          1187008832,
//		End:            1187008960,
//		SampleRate:     4096,
//	})
//
// Endpoints used:
//   - {base}/archive/links/{dataset}/{ifo}/{start}/{end}/json/
//   - the file URLs listed in the response
package gwosc
