package wav_test

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/wav"
)

func ExampleEncode() {
	silence := buffer.New(44100, 2, 100)

	data, err := wav.Encode(silence)
	if err != nil {
		fmt.Println(err)
		return
	}

	h, _ := wav.ParseHeader(data)
	fmt.Println(len(data), h.NumChannels, h.BitsPerSample, h.DataSize)
	// Output: 444 2 16 400
}
