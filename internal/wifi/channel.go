package wifi

import (
	"math"
	"strconv"

	"github.com/roman-kulish/wifi-survey/internal/config"
)

const (
	band24Min = 2.400
	band24Max = 2.500
	band5Min  = 5.100
	band5Max  = 5.900
)

// channelCenters24GHz lists the centre frequency in GHz of every 2.4 GHz channel
var channelCenters24GHz = [14]struct {
	freq    float64
	channel int
}{
	{2.412, 1}, {2.417, 2}, {2.422, 3}, {2.427, 4},
	{2.432, 5}, {2.437, 6}, {2.442, 7}, {2.447, 8},
	{2.452, 9}, {2.457, 10}, {2.462, 11}, {2.467, 12},
	{2.472, 13}, {2.484, 14},
}

// ChannelMapper maps link centre frequencies to channel numbers
type ChannelMapper struct {
	tolerance float64
	bands     []config.SubBand
}

// NewChannelMapper creates a mapper accepting 2.4 GHz matches strictly closer
// than tolerance GHz to a channel centre, and 5 GHz frequencies inside bands.
func NewChannelMapper(tolerance float64, bands []config.SubBand) *ChannelMapper {
	return &ChannelMapper{
		tolerance: tolerance,
		bands:     bands,
	}
}

// NewChannelMapperFromConfig creates a mapper from the channel configuration
func NewChannelMapperFromConfig(c config.ChannelConfig) *ChannelMapper {
	return NewChannelMapper(c.Tolerance, c.Bands5GHz)
}

// Channel returns the channel for the frequency in GHz, or nil if nothing matches
func (m *ChannelMapper) Channel(freqGHz *float64) *int {
	if freqGHz == nil {
		return nil
	}

	freq := roundMHz(*freqGHz)

	switch {
	case freq > band24Min && freq < band24Max:
		return m.nearest24GHz(freq)

	case freq > band5Min && freq < band5Max:
		for _, b := range m.bands {
			if freq > b.Min && freq < b.Max {
				ch := b.Channel
				return &ch
			}
		}
	}

	return nil
}

func (m *ChannelMapper) nearest24GHz(freq float64) *int {
	best := channelCenters24GHz[0]
	bestDiff := math.Abs(best.freq - freq)

	for _, c := range channelCenters24GHz[1:] {
		if d := math.Abs(c.freq - freq); d < bestDiff {
			best, bestDiff = c, d
		}
	}

	// a reading exactly tolerance away still matches; epsilon absorbs float noise
	if bestDiff > m.tolerance+1e-9 {
		return nil
	}
	ch := best.channel
	return &ch
}

// roundMHz rounds a GHz value to three decimals using its exact binary value,
// so 2.4145, stored just below the tie, rounds down to 2.414.
func roundMHz(freqGHz float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(freqGHz, 'f', 3, 64), 64)
	if err != nil {
		return freqGHz
	}
	return v
}
