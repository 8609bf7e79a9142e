// Package domain implements the schema alignment layer shared by the
// prediction service and the reporting pipeline.
//
// # Vocabularies
//
// The model was trained on a fixed set of carrier and airport codes. Any code
// outside that set is rewritten to the catch-all sentinel "OTHER" — both when
// encoding a prediction request and when bucketing historical data for
// aggregate reporting. There is exactly one authoritative vocabulary per
// logical field (see [AirlineVocabulary] and [AirportVocabulary]); the two
// consumers must never drift apart.
//
// # Encoding modes
//
// Two model artifact generations exist with incompatible input contracts:
//
//	Pipeline encoding:
//	  The artifact performs its own categorical encoding. Alignment produces
//	  the raw ordered tuple (carrier, origin, dest, dayOfWeek, depHour,
//	  length). Every field is required; a missing field or a value that
//	  cannot be coerced to a number is a client error.
//
//	Schema encoding:
//	  The artifact expects a pre-expanded one-hot row matching the training
//	  column manifest exactly. Missing fields fall back to defaults
//	  (categoricals to "OTHER", dayOfWeek=1, depHour=10, length=120),
//	  categoricals are normalized against their vocabularies, and the row is
//	  projected onto the manifest: numeric columns carry their values,
//	  one-hot columns Field_Value carry 1 for the normalized category, and
//	  every remaining column is zero. The output vector always has exactly
//	  the manifest's length and order.
//
// Both modes are served by a single [Aligner] selected by a declared
// [EncodingMode] rather than by parallel code paths.
//
// # Time convention
//
// Schema encoding derives Time = depHour * 100, reproducing the HHMM-style
// schedule-time representation the historical training data uses (e.g. hour
// 15 encodes as 1500). This is an encoding convention, not a unit conversion.
package domain
