package sets

import (
	"strconv"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
)

var trackHeader = []string{"LEG", "LEG-BEGIN", "LEG-END", "LEG-WIDTH", "MINALT-MAXALT"}

var parseLegSequence = ffirn.Count("Leg sequence", 1, 99)

// Leg is one row of a 1TRACK.
type Leg struct {
	Sequence int                     `json:"sequence"`
	Begin    ffirn.LatLon            `json:"begin"`
	End      ffirn.LatLon            `json:"end"`
	Width    ffirn.TrackWidth        `json:"width"`
	Altitude ffirn.VerticalDimension `json:"altitude"`
}

// OneTrack is the columnar track set: a header row naming the five columns
// followed by one row per leg. Legs are numbered from 01 without gaps.
type OneTrack struct {
	*mtf.Set
	Legs []Leg `json:"legs"`
}

func NewOneTrack(s *mtf.Set) mtf.Record {
	t := &OneTrack{Set: s}
	header, rows, ok := columns(s, len(trackHeader))
	if !ok {
		return t
	}
	checkHeader(s, header, trackHeader)

	for i, row := range rows {
		leg := Leg{
			Sequence: cell(s, row, 0, parseLegSequence),
			Begin:    cell(s, row, 1, ffirn.ParseLatLon),
			End:      cell(s, row, 2, ffirn.ParseLatLon),
			Width:    cell(s, row, 3, ffirn.ParseTrackWidth),
			Altitude: cell(s, row, 4, ffirn.ParseRARA),
		}
		if leg.Sequence != i+1 {
			s.AddError("Track legs are out of sequence", row[0].Raw(), strconv.Itoa(i+1))
		}
		t.Legs = append(t.Legs, leg)
	}
	return t
}

// checkHeader requires the header row of a columnar set to carry the
// expected column labels.
func checkHeader(s *mtf.Set, header []mtf.Field, want []string) {
	for i, label := range want {
		if header[i].Raw() != label {
			s.AddError("Unexpected column heading in "+s.Type(), header[i].Raw(), label)
		}
	}
}
