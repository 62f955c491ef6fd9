//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/VocalCoach/internal/discrepancy"
	"github.com/himanishpuri/VocalCoach/internal/engine"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorProcessing
	ErrorNoPitch
	ErrorAnalysis
)

// extractPitch turns raw samples into a reduced pitch track.
// Args: audioArray, sampleRate, channels[, reducer]
// Returns: {error: number, data: {pitches: number[], times: number[]} | string}
func extractPitch(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected arguments: audioArray, sampleRate, channels[, reducer]")
	}
	if args[1].Type() != js.TypeNumber || args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate and channels must be numbers")
	}

	sampleRate := args[1].Int()
	channels := args[2].Int()
	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	mode := pitch.MaxPitch
	if len(args) > 3 && args[3].Type() == js.TypeString {
		m, err := pitch.ParseMode(args[3].String())
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		mode = m
	}

	samples, err := readFloats(args[0], "audioArray")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	if len(samples) == 0 {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray is empty")
	}
	if channels == 2 {
		samples = stereoToMono(samples)
	}

	matrix, times, err := pitch.NewExtractor(sampleRate).Extract(samples)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Pitch extraction failed: %v", err))
	}
	if len(matrix) == 0 {
		return makeErrorResponse(ErrorNoPitch, "No pitch frames produced (audio may be too short)")
	}

	data := js.Global().Get("Object").New()
	data.Set("pitches", toJSArray(pitch.ReduceWith(matrix, mode)))
	data.Set("times", toJSArray(times))
	return makeResponse(data)
}

// analyzePerformance compares two reduced pitch tracks and annotates lyrics.
// Args: teacherPitches, teacherTimes, studentPitches, studentTimes, lyrics[, tolerance[, scale]]
// Returns: {error: number, data: {annotated, flags, words, path, cost, unplaced} | string}
func analyzePerformance(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return makeErrorResponse(ErrorInvalidArgs,
			"Expected arguments: teacherPitches, teacherTimes, studentPitches, studentTimes, lyrics[, tolerance[, scale]]")
	}

	names := []string{"teacherPitches", "teacherTimes", "studentPitches", "studentTimes"}
	seqs := make([][]float64, len(names))
	for i, name := range names {
		v, err := readFloats(args[i], name)
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		seqs[i] = v
	}
	if args[4].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "lyrics must be a string")
	}

	opts := engine.DefaultOptions()
	if len(args) > 5 && args[5].Type() == js.TypeNumber {
		opts.Tolerance = args[5].Float()
	}
	if len(args) > 6 && args[6].Type() == js.TypeString {
		scale, err := discrepancy.ParseScale(args[6].String())
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		opts.Scale = scale
	}

	report, err := engine.AnalyzeSequences(
		pitch.Sequence(seqs[0]), pitch.TimeAxis(seqs[1]),
		pitch.Sequence(seqs[2]), pitch.TimeAxis(seqs[3]),
		args[4].String(), opts,
	)
	if err != nil {
		return makeErrorResponse(ErrorAnalysis, fmt.Sprintf("Analysis failed: %v", err))
	}

	words := js.Global().Get("Array").New()
	for i, w := range report.Words {
		obj := js.Global().Get("Object").New()
		obj.Set("word", w.Word)
		obj.Set("start", w.Start)
		obj.Set("end", w.End)
		obj.Set("flagged", w.Flagged)
		words.SetIndex(i, obj)
	}

	path := js.Global().Get("Array").New()
	for i, c := range report.Path {
		path.SetIndex(i, js.ValueOf([]interface{}{c.I, c.J}))
	}

	data := js.Global().Get("Object").New()
	data.Set("annotated", report.Annotated)
	data.Set("flags", toJSArray(report.Flags))
	data.Set("words", words)
	data.Set("path", path)
	data.Set("cost", report.Cost)
	data.Set("unplaced", report.Unplaced)
	return makeResponse(data)
}

func readFloats(v js.Value, name string) ([]float64, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("%s must be an Array or Float64Array", name)
	}
	n := v.Length()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		el := v.Index(i)
		if el.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s element %d is not a number", name, i)
		}
		out[i] = el.Float()
	}
	return out, nil
}

func toJSArray(values []float64) js.Value {
	arr := js.Global().Get("Array").New(len(values))
	for i, v := range values {
		arr.SetIndex(i, v)
	}
	return arr
}

func stereoToMono(stereo []float64) []float64 {
	mono := make([]float64, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[2*i] + stereo[2*i+1]) / 2
	}
	return mono
}

func makeResponse(data js.Value) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, msg string) {
		if !console.IsUndefined() {
			console.Call(method, msg)
		}
	}

	logf("log", "🔧 VocalCoach WASM module initializing...")

	js.Global().Set("extractPitch", js.FuncOf(extractPitch))
	js.Global().Set("analyzePerformance", js.FuncOf(analyzePerformance))
	logf("log", "📝 extractPitch and analyzePerformance registered")

	window := js.Global().Get("window")
	if window.IsUndefined() {
		logf("error", "❌ window object is undefined!")
	} else {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
		logf("log", "✅ wasmReady event dispatched")
	}

	select {}
}
