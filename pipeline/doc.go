// Package pipeline implements the parallel scanline encoding pipeline.
//
// Rows flow through four stages. The chunker groups incoming rows into
// fixed-size packs, each tagged with a contiguous sequence id and carrying a
// snapshot of the previous pack's last raw row as filtering context. A bounded
// worker pool filters and compresses packs concurrently, one pack per task,
// each pack into a self-contained deflate fragment with its own reset window.
// The reassembler restores sequence order with a watermark and pending map,
// splits the accumulated stream into size-bounded data chunks, and maintains
// the running stream checksum in emission order.
//
// Backpressure is enforced with an in-flight pack cap: once the cap is
// reached, row submission blocks until the reassembler retires a pack. The
// first failure anywhere in the pipeline stops new work, lets running tasks
// settle, discards their results, and is returned to the caller.
//
// Encoder is the public entry point; the other stages are internal.
package pipeline
