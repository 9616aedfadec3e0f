// Package domain turns National Weather Service (NWS) active alerts into a
// composite severe-weather score and decides when each notification class
// fires. Everything here is pure: callers pass the current time and location.
//
// # Data Source
//
// Alerts come from the NWS API at https://api.weather.gov/alerts/active as a
// GeoJSON FeatureCollection. Only the properties block is used:
//
//	event        "Tornado Warning", "Severe Thunderstorm Warning", "Tornado Watch", ...
//	headline     one-line summary, often carries escalation wording
//	description  free text: SOURCE...HAZARD...IMPACT lines, storm motion
//	areaDesc     "Tulsa, OK; Creek, OK; Wagoner, OK"
//	sent         issuance time
//	effective    time the product takes effect
//	onset        expected beginning of the hazard
//	expires      nominal expiration
//
// # Escalation Markers
//
// Forecast offices escalate tornado warnings in free text before (or
// instead of) changing the structured event name:
//
//	"THIS IS A PARTICULARLY DANGEROUS SITUATION"  → PDS
//	"TORNADO EMERGENCY FOR ..."                   → tornado emergency
//
// Markers are matched case-insensitively against headline and description.
// The phrase tables live in phrases.yaml and can be replaced at runtime
// with [SetPhrases].
//
// # Scoring
//
// Base score by first match:
//
//	tornado emergency 150 | PDS 100 | tornado warning 25
//	severe thunderstorm warning 10 | tornado watch 5 | anything else 0
//
// Corroboration bonuses (description text, all categories):
//
//	confirmed/observed +30   debris signature +50   wedge +40
//	wind  ≥130 mph +50 | ≥100 +25 | ≥70 +10
//	hail  ≥2.0 in +25  | ≥1.0 +10
//	width ≥1.0 mi +30  | ≥0.5 +15
//
// Tornado warnings only:
//
//	motion ≥70 mph +20 | ≥50 +10
//	onset 20:00–06:00 local +25
//	names a large city +20
//	issued within the last 5 minutes +10
//
// Area size: ≥10 semicolon segments +20, ≥5 +10.
//
// Decay: one point per elapsed tenth of the sent→expires window (at most 10),
// never applied to tornado watches, never below zero.
//
// # Episodes
//
// [EpisodeTracker] implements the fire/re-arm hysteresis shared by the
// breakout, outbreak and tornado-emergency classes.
package domain
