// Package kystverket documents the Kystverket NMEA-over-TCP collaborator contract and
// implements the AIVDM decode step: NMEA sentence parsing, multi-fragment reassembly,
// and AIS payload decoding, with the ITU-R M.1371 "not available" sentinel values
// (lat=91, lon=181, heading=511) dropped to nil per spec.md §6. The TCP dial itself is
// out of scope (spec.md §1).
package kystverket

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	ais "github.com/BertoldVdb/go-ais"
	nmea "github.com/adrianmo/go-nmea"

	"github.com/radiancefleet/core/internal/model"
)

// Stream is the NMEA-over-TCP collaborator contract; establishing the connection is
// out of scope here.
type Stream interface {
	Connect(ctx context.Context) (io.ReadCloser, error)
}

// ITU-R M.1371 "not available" sentinels for lat/lon. AISPoint has no pointer-shaped
// position fields, so a sentinel position drops the whole point rather than nil-ing a
// field (unlike SOG/COG/Heading, which model.AISPoint already represents as pointers).
const (
	latAbsentSentinel = 91
	lonAbsentSentinel = 181
)

// Decoder turns raw NMEA/AIVDM lines into AISPoints, reassembling multi-fragment
// messages across calls. Not safe for concurrent use; the pipeline is single-threaded
// per run (spec.md §5), so one Decoder suffices per stream.
type Decoder struct {
	codec     *ais.Codec
	fragments map[int64]*fragmentSet
}

type fragmentSet struct {
	parts map[int64][]byte
	total int64
}

// NewDecoder returns a Decoder ready to consume a Kystverket line stream.
func NewDecoder() *Decoder {
	codec := ais.CodecNew(false, false)
	codec.DropSpace = true
	return &Decoder{codec: codec, fragments: make(map[int64]*fragmentSet)}
}

// DecodeLine parses one NMEA line and, once a full AIS position report has been
// reassembled, returns the corresponding AISPoint. ok is false when the line produced
// no point yet (a GPS sentence, a mid-sequence fragment, or unparseable noise) -- this
// is not an error.
func (d *Decoder) DecodeLine(line string, vesselID string, source string, receivedAt time.Time) (*model.AISPoint, bool, error) {
	line = trimToSentenceStart(line)
	if line == "" {
		return nil, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return nil, false, nil
	}

	vdm, isVDM := sentence.(nmea.VDMVDO)
	if !isVDM {
		return nil, false, nil
	}

	payload := vdm.Payload
	if vdm.NumFragments > 1 {
		var complete bool
		payload, complete = d.reassemble(vdm)
		if !complete {
			return nil, false, nil
		}
	}

	packet := d.codec.DecodePacket(payload)
	if packet == nil {
		return nil, false, fmt.Errorf("adapters/kystverket: undecodable AIS payload")
	}

	switch msg := packet.(type) {
	case ais.PositionReport:
		return pointFromReport(vesselID, source, receivedAt,
			float64(msg.Latitude), float64(msg.Longitude), float64(msg.Sog), float64(msg.Cog), int(msg.TrueHeading))
	case ais.StandardClassBPositionReport:
		return pointFromReport(vesselID, source, receivedAt,
			float64(msg.Latitude), float64(msg.Longitude), float64(msg.Sog), float64(msg.Cog), int(msg.TrueHeading))
	default:
		return nil, false, nil
	}
}

func (d *Decoder) reassemble(vdm nmea.VDMVDO) (payload []byte, complete bool) {
	set, exists := d.fragments[vdm.MessageID]
	if !exists {
		set = &fragmentSet{parts: make(map[int64][]byte), total: vdm.NumFragments}
		d.fragments[vdm.MessageID] = set
	}
	set.parts[vdm.FragmentNumber] = vdm.Payload
	if int64(len(set.parts)) < set.total {
		return nil, false
	}
	delete(d.fragments, vdm.MessageID)

	var out []byte
	for i := int64(1); i <= set.total; i++ {
		part, ok := set.parts[i]
		if !ok {
			return nil, false
		}
		out = append(out, part...)
	}
	return out, true
}

// pointFromReport builds an AISPoint from decoded fields, dropping ITU-R "not
// available" sentinels to nil/skip per spec.md §6. A sentinel lat/lon means the whole
// position report carries no usable fix, so the point is skipped entirely rather than
// stored with a zero coordinate.
func pointFromReport(vesselID, source string, receivedAt time.Time, lat, lon, sog, cog float64, heading int) (*model.AISPoint, bool, error) {
	if int(lat) == latAbsentSentinel || int(lon) == lonAbsentSentinel {
		return nil, false, nil
	}

	p := &model.AISPoint{
		VesselID:     vesselID,
		TimestampUTC: receivedAt.UTC(),
		Lat:          lat,
		Lon:          lon,
		Source:       source,
	}
	// go-ais reports Sog as float32; widening 102.3f to float64 doesn't land on the
	// float64 literal exactly, so the sentinel check needs a tolerance.
	if math.Abs(sog-model.SOGAbsentSentinel) > 0.01 {
		sogCopy := sog
		p.SOG = &sogCopy
	}
	if cog != model.COGAbsentSentinel {
		cogCopy := cog
		p.COG = &cogCopy
	}
	if heading != model.HeadingAbsentSentinel {
		headingCopy := heading
		p.Heading = &headingCopy
	}
	return p, true, nil
}

// trimToSentenceStart discards any prefix before the NMEA sentence's leading "!" or
// "$" delimiter, matching how Kystverket's feed occasionally prepends a timestamp tag.
func trimToSentenceStart(line string) string {
	if idx := strings.IndexByte(line, '!'); idx >= 0 {
		return line[idx:]
	}
	if idx := strings.IndexByte(line, '$'); idx >= 0 {
		return line[idx:]
	}
	return ""
}
