// Package feed carries detector frames into the session over websocket.
//
// Each websocket text message is one JSON-encoded session.Frame:
//
//	{
//	  "frame":    {"width": 1920, "height": 1080, "orientation": "portrait"},
//	  "viewport": {"width": 390, "height": 844},
//	  "barcodes": [{"value": "...", "type": "qr", "cornerPoints": [...], ...}]
//	}
//
// "viewport" is optional. Messages that fail to decode are logged and
// skipped; they never end the stream.
//
// Delivery favours freshness: when the consumer falls behind, the oldest
// undelivered frame is discarded so the newest one is always next. Dropped
// frames are counted.
//
// Dial connects to a detector that serves frames. Handler accepts detectors
// that connect in. Both yield a Feed.
package feed
