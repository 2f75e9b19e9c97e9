// Package engine implements the BoxWorld game-state engine: a deterministic,
// discrete-time grid puzzle in which an agent collects colour-coded keys and
// uses them to open colour-coded locked boxes, chaining until the goal key is
// produced.
//
// The engine package implements:
//   - Board parsing from the "rows|cols|e0|e1|..." wire format
//   - The action-application state machine (movement, key pickup, lock opening)
//   - An incrementally maintained Zobrist content hash for state deduplication
//   - A fixed-shape multi-channel observation encoder for learned policies
//   - A sprite-based RGB image renderer for visualization
//   - A versioned binary serializer for persistence and cross-process transfer
//
// Core Types:
//
// GameEngine owns one mutable board, inventory, hash, and the derived
// key/lock index sets. GameConfig defines the level (board string, hash
// seed, options) loaded from JSON files. Clones share the immutable
// per-episode configuration and deep-copy the mutable state, which makes
// "same level, different path" copies cheap for tree search.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.ApplyAction(engine.Right)
//	solved := eng.IsSolution()
//	hash := eng.GetHash()
//
// Game Rules:
//
// The agent moves in four directions. Walking onto a bare key picks it up;
// walking onto a lock while holding its colour consumes the key and yields
// the colour stored in the box (the cell immediately left of the lock). The
// puzzle is solved when the goal colour is held. Moves off the board or into
// non-matching cells are silent no-ops, so every action is always legal.
package engine
