// Package sedeval evaluates sound event detection and acoustic scene
// classification output against reference annotations.
//
// # Quick Start
//
//	seg, err := sedeval.NewSegmentBasedMetrics(labels, sedeval.WithTimeResolution(1.0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ev, err := sedeval.NewEventBasedMetrics(labels, sedeval.WithCollar(0.25))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, pair := range pairs {
//	    if err := seg.Evaluate(pair.Reference, pair.Estimated); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := ev.Evaluate(pair.Reference, pair.Estimated); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	res := ev.Results()
//	fmt.Printf("F: %.2f ER: %.2f\n", res.Overall.FMeasure.FMeasure, res.Overall.ErrorRate.ErrorRate)
//
// # Engines
//
// SegmentBasedMetrics compares activity per fixed-length segment.
// EventBasedMetrics matches whole events under an onset/offset collar.
// SceneClassificationMetrics and AudioTaggingMetrics score one label, or a
// set of tags, per file. Every engine accumulates counts over repeated
// Evaluate calls and derives metrics on demand with Results.
//
// # Thread Safety
//
// Engines are not safe for concurrent use. To evaluate in parallel, give each
// goroutine its own engine and combine them with Merge.
package sedeval
