// Package reversejp resolves a longitude/latitude in Japan to the administrative
// regions and landslide hazard zones that contain it.
//
// An Engine is built once from a fixed set of zip-compressed GeoJSON shards and
// is read-only afterwards, so a single Engine can serve any number of
// goroutines without locking:
//
//	eng, err := reversejp.BuildEmbedded()
//	if err != nil {
//		return err
//	}
//	for _, p := range eng.Find(139.7670, 35.6812) {
//		fmt.Println(p.Code, p.Name, p.EnName)
//	}
//
// Queries scan every polygon in the index. When the exact point matches
// nothing, Find retries with small coordinate offsets (see ProbeOffsets) to
// absorb rounding in the source polygons.
package reversejp
