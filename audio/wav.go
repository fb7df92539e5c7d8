package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// WAVHeader holds the parsed RIFF/WAV header fields.
type WAVHeader struct {
	SampleRate    uint32
	BitsPerSample uint16
	NumChannels   uint16
	NumSamples    int // per channel
}

// WAV is a decoded waveform: normalized float64 samples in [-1.0, 1.0],
// one slice per channel.
type WAV struct {
	Channels [][]float64
	Header   WAVHeader
}

// NumChannels returns the channel count.
func (w *WAV) NumChannels() int { return len(w.Channels) }

// Duration returns the waveform length in seconds.
func (w *WAV) Duration() float64 {
	if w.Header.SampleRate == 0 {
		return 0
	}
	return float64(w.Header.NumSamples) / float64(w.Header.SampleRate)
}

// Channel returns the samples of channel c.
func (w *WAV) Channel(c int) []float64 { return w.Channels[c] }

// ReadWAV reads a 16-bit PCM WAV stream, mono or multi-channel, and
// de-interleaves it into per-channel sample slices.
func ReadWAV(r io.ReadSeeker) (*WAV, error) {
	var header WAVHeader

	// Read RIFF header
	var riffID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &riffID); err != nil {
		return nil, fmt.Errorf("read RIFF ID: %w", err)
	}
	if string(riffID[:]) != "RIFF" {
		return nil, errors.New("not a RIFF file")
	}

	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return nil, fmt.Errorf("read file size: %w", err)
	}

	var waveID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &waveID); err != nil {
		return nil, fmt.Errorf("read WAVE ID: %w", err)
	}
	if string(waveID[:]) != "WAVE" {
		return nil, errors.New("not a WAVE file")
	}

	// Read chunks
	var fmtFound, dataFound bool
	var channels [][]float64

	for {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read chunk ID: %w", err)
		}

		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, fmt.Errorf("read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := readFmtChunk(r, chunkSize, &header); err != nil {
				return nil, err
			}
			fmtFound = true

		case "data":
			if !fmtFound {
				return nil, errors.New("data chunk before fmt chunk")
			}
			var err error
			channels, err = readDataChunk(r, chunkSize, &header)
			if err != nil {
				return nil, err
			}
			dataFound = true

		default:
			// Skip unknown chunks; align to even boundary
			skip := int64(chunkSize)
			if chunkSize%2 != 0 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip chunk %q: %w", chunkID, err)
			}
		}

		if fmtFound && dataFound {
			break
		}
	}

	if !fmtFound {
		return nil, errors.New("missing fmt chunk")
	}
	if !dataFound {
		return nil, errors.New("missing data chunk")
	}

	return &WAV{Channels: channels, Header: header}, nil
}

// ReadWAVFile is a convenience wrapper that opens a file path.
func ReadWAVFile(path string) (*WAV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f)
}

func readFmtChunk(r io.ReadSeeker, size uint32, h *WAVHeader) error {
	var audioFormat uint16
	if err := binary.Read(r, binary.LittleEndian, &audioFormat); err != nil {
		return fmt.Errorf("read audio format: %w", err)
	}
	if audioFormat != 1 {
		return fmt.Errorf("unsupported audio format %d (only PCM=1 supported)", audioFormat)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.NumChannels); err != nil {
		return fmt.Errorf("read num channels: %w", err)
	}
	if h.NumChannels == 0 {
		return errors.New("zero channels")
	}

	if err := binary.Read(r, binary.LittleEndian, &h.SampleRate); err != nil {
		return fmt.Errorf("read sample rate: %w", err)
	}

	// Skip byteRate (4 bytes) and blockAlign (2 bytes)
	if _, err := r.Seek(6, io.SeekCurrent); err != nil {
		return fmt.Errorf("skip byte rate / block align: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.BitsPerSample); err != nil {
		return fmt.Errorf("read bits per sample: %w", err)
	}
	if h.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bits per sample %d (only 16 supported)", h.BitsPerSample)
	}

	// Skip any extra fmt bytes
	consumed := uint32(16) // audioFormat(2) + numChannels(2) + sampleRate(4) + byteRate(4) + blockAlign(2) + bitsPerSample(2)
	if size > consumed {
		if _, err := r.Seek(int64(size-consumed), io.SeekCurrent); err != nil {
			return fmt.Errorf("skip extra fmt bytes: %w", err)
		}
	}

	return nil
}

func readDataChunk(r io.Reader, size uint32, h *WAVHeader) ([][]float64, error) {
	bytesPerSample := int(h.BitsPerSample) / 8
	numChannels := int(h.NumChannels)
	totalSamples := int(size) / bytesPerSample
	perChannel := totalSamples / numChannels
	h.NumSamples = perChannel

	raw := make([]int16, totalSamples)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("read PCM data: %w", err)
	}

	channels := make([][]float64, numChannels)
	buf := make([]float64, numChannels*perChannel)
	for c := range channels {
		channels[c] = buf[c*perChannel : (c+1)*perChannel]
	}
	// De-interleave frames: sample i of channel c is raw[i*numChannels+c].
	for i := 0; i < perChannel; i++ {
		base := i * numChannels
		for c := 0; c < numChannels; c++ {
			channels[c][i] = float64(raw[base+c]) / 32768.0
		}
	}

	return channels, nil
}
