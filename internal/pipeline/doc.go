// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package pipeline runs one recommendation request through a fixed, ordered
list of stages.

# Stages

	candidates  load eligible venues from the store or the request
	genre       narrow candidates to genres named in the query
	location    resolve a search center and hard radius
	scope       keep candidates inside the radius, relaxing when empty
	social      BFS over accepted follows, concurrently with the post fetch
	evidence    attach hop distances, cap posts per venue, score venues
	pool        order and bound the set handed to the ranking oracle
	history     read recent turns of the conversation thread
	oracle      rank the pool, or fall back to nearest-first
	merge       enforce membership, fill, boost, and sort
	respond     assemble the response

Each stage receives the accumulated State by value and returns a Patch. The
sequencer applies the patch to a copy, so no stage mutates an earlier
stage's output. Every stage also contributes one trace line of the form
"name: key=value key=value", returned in meta.trace.

# Failure Handling

Only the candidate read is required. A failure there aborts the run with
ErrDataStore. Geocoder and oracle failures fall back inside their stage.
Post and follow-edge failures are logged and the run continues with what
was read. History reads and appends never fail a request.
*/
package pipeline
