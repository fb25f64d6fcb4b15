// Package resolve implements the Frame Resolver (spec §4.6): for a given
// output frame, determine whether it falls on a plain source frame or
// inside a transition window, and if the latter, at what progress.
package resolve

import (
	"github.com/andrewarrow/scenecast/remap"
	"github.com/andrewarrow/scenecast/timeline"
)

// Source is a plain, untransitioning output frame backed by one file.
type Source struct {
	File string
}

// Transition is an output frame that falls inside a transition window
// between two files.
type Transition struct {
	BeforeFile string
	AfterFile  string
	Progress   float64
	Kind       timeline.TransitionKind
}

// Frame is the resolver's result for one output frame: exactly one of
// Source or Transition is non-nil.
type Frame struct {
	Source     *Source
	Transition *Transition
}

// ResolveOutputFrame implements spec §4.6's algorithm: walk the transition
// markers in ascending AfterEntryIndex order, tracking a cumulative offset
// of frames the transitions themselves have inserted. A transition whose
// output window contains fOut wins; otherwise fOut is a plain source frame
// once the accumulated offset is subtracted back out.
func ResolveOutputFrame(fOut int64, manifest []timeline.ManifestEntry, transitions []timeline.TransitionMarker) Frame {
	var offset int64

	for _, marker := range transitions {
		s := remap.LastExpandedFrameOfEntry(manifest, marker.AfterEntryIndex)
		if s < 0 {
			continue
		}
		lastBefore := s + offset
		windowStart := lastBefore + 1
		windowEnd := lastBefore + int64(marker.DurationFrames)

		if fOut >= windowStart && fOut <= windowEnd {
			progress := float64(fOut-lastBefore) / float64(marker.DurationFrames)
			before := marker.BeforeFile
			if before == "" {
				before = fileAtExpandedFrame(manifest, s)
			}
			after := marker.AfterFile
			if after == "" {
				after = firstFileOfEntry(manifest, marker.AfterEntryIndex+1)
			}
			return Frame{Transition: &Transition{
				BeforeFile: before,
				AfterFile:  after,
				Progress:   progress,
				Kind:       marker.Kind,
			}}
		}

		offset += int64(marker.DurationFrames - marker.EffectiveConsumedFrames())
	}

	sourceFrame := fOut - offset
	total := remap.ExpandedFrameCount(manifest)
	if sourceFrame < 0 {
		sourceFrame = 0
	}
	if sourceFrame > total-1 {
		sourceFrame = total - 1
	}
	return Frame{Source: &Source{File: fileAtExpandedFrame(manifest, sourceFrame)}}
}

// fileAtExpandedFrame finds the file backing the given expanded frame index.
func fileAtExpandedFrame(manifest []timeline.ManifestEntry, frameIdx int64) string {
	var cursor int64
	for _, e := range manifest {
		n := e.Frames()
		if frameIdx < cursor+n {
			return e.File
		}
		cursor += n
	}
	if len(manifest) == 0 {
		return ""
	}
	return manifest[len(manifest)-1].File
}

// firstFileOfEntry returns the file of manifest entry i, or the manifest's
// last file if i is out of range (the transition is the final one).
func firstFileOfEntry(manifest []timeline.ManifestEntry, i int) string {
	if i < 0 || i >= len(manifest) {
		if len(manifest) == 0 {
			return ""
		}
		return manifest[len(manifest)-1].File
	}
	return manifest[i].File
}
