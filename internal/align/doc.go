// Package align reconciles independently-timed transcript spans with
// diarized speaker segments into a single ordered, speaker-labeled
// utterance sequence. Labels are assigned by maximal temporal overlap and
// adjacent same-speaker utterances separated by a small gap are merged.
package align
