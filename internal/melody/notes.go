package melody

// Rest is the note name of a silence.
const Rest = "0"

// Frequencies in Hz, including enharmonic aliases.
var Frequencies = map[string]uint32{
	"C4": 262, "C#4": 277, "D4": 294, "D#4": 311, "Eb4": 311, "E4": 330, "F4": 349, "F#4": 370,
	"Gb4": 370, "G4": 392, "G#4": 415, "Ab4": 415, "A4": 440, "A#4": 466, "Bb4": 466, "B4": 494,
	"C5": 523, "C#5": 554, "D5": 587, "D#5": 622, "Eb5": 622, "E5": 659, "F5": 698, "F#5": 740,
	"Gb5": 740, "G5": 784, "G#5": 830, "Ab5": 830, "A5": 880, "A#5": 932, "Bb5": 932, "B5": 988,
	"C6": 1047, "D6": 1175, "E6": 1319, "F6": 1397, "G6": 1568, Rest: 0,
}

// Note is a pitch and a duration expressed as a fraction of a beat
// (4 = quarter of the beat length, 8 = eighth).
type Note struct {
	Name     string
	Division int
}

// Melody is a named sequence of notes.
type Melody struct {
	Name  string
	Notes []Note
}

// Mario is the opening of the Super Mario Bros. theme.
var Mario = Melody{Name: "Mario", Notes: []Note{
	{"E5", 8}, {"E5", 8}, {Rest, 8}, {"E5", 8}, {Rest, 8}, {"C5", 8}, {"E5", 8}, {Rest, 8},
	{"G5", 4}, {Rest, 4}, {"G4", 4}, {Rest, 4},
	{"C5", 8}, {Rest, 8}, {"G4", 8}, {Rest, 8}, {"E4", 8}, {Rest, 8},
	{"A4", 8}, {Rest, 8}, {"B4", 8}, {Rest, 8}, {"Bb4", 8}, {"A4", 8}, {Rest, 8},
	{"G4", 6}, {"E5", 6}, {"G5", 6}, {"A5", 8}, {Rest, 8},
	{"F5", 8}, {"G5", 8}, {Rest, 8}, {"E5", 8}, {Rest, 8}, {"C5", 8}, {"D5", 8}, {"B4", 8}, {Rest, 8},
}}

// Elise is the opening of Für Elise, two phrases.
var Elise = Melody{Name: "Pour Elise", Notes: []Note{
	{"E5", 8}, {"D#5", 8}, {"E5", 8}, {"D#5", 8}, {"E5", 8}, {"B4", 8}, {"D5", 8}, {"C5", 8},
	{"A4", 4}, {Rest, 8},
	{"C4", 8}, {"E4", 8}, {"A4", 8}, {"B4", 4}, {Rest, 8},
	{"E4", 8}, {"G#4", 8}, {"B4", 8}, {"C5", 4}, {Rest, 8},

	{"E5", 8}, {"D#5", 8}, {"E5", 8}, {"D#5", 8}, {"E5", 8}, {"B4", 8}, {"D5", 8}, {"C5", 8},
	{"A4", 4}, {Rest, 8},
	{"C4", 8}, {"E4", 8}, {"A4", 8}, {"B4", 4}, {Rest, 8},
	{"E4", 8}, {"C5", 8}, {"B4", 8}, {"A4", 4}, {Rest, 8},
}}

// Library is the playlist cycled by the button.
var Library = []Melody{Mario, Elise}
