package catalog

import "github.com/questlabs/roomquest/internal/quest"

// Default returns the built-in world: an abandoned manor of nine rooms with
// a twenty-question bank. It is used whenever no world pack is configured.
func Default() *Catalog {
	c, err := New(defaultRooms(), defaultQuestions(), DefaultAchievements())
	if err != nil {
		// The built-in world is covered by tests; reaching this means the
		// content was edited into an invalid state.
		panic(err)
	}
	return c
}

func defaultRooms() []quest.Room {
	return []quest.Room{
		{
			ID:          "entrance-hall",
			Name:        "Entrance Hall",
			Description: "A dust-sheeted hall beneath a cracked chandelier. Doors lead deeper into the manor.",
			Connections: []string{"library", "dining-room"},
			Start:       true,
		},
		{
			ID:               "library",
			Name:             "Library",
			Description:      "Floor-to-ceiling shelves, a ladder on rails, and the smell of old paper.",
			Connections:      []string{"study"},
			QuestionCategory: "history",
		},
		{
			ID:               "dining-room",
			Name:             "Dining Room",
			Description:      "A long table set for a dinner that never happened.",
			Connections:      []string{"kitchen", "gallery"},
			QuestionCategory: "culture",
		},
		{
			ID:               "study",
			Name:             "Study",
			Description:      "A desk of unanswered letters and a globe worn smooth at the equator.",
			Connections:      []string{"observatory"},
			QuestionCategory: "history",
		},
		{
			ID:               "kitchen",
			Name:             "Kitchen",
			Description:      "Copper pans gone green and an iron stove that still holds a little warmth.",
			Connections:      []string{"cellar"},
			QuestionCategory: "science",
		},
		{
			ID:               "gallery",
			Name:             "Gallery",
			Description:      "Portraits with followed-you eyes and one conspicuous empty frame.",
			Connections:      []string{"conservatory"},
			QuestionCategory: "culture",
		},
		{
			ID:               "cellar",
			Name:             "Cellar",
			Description:      "Cold stone, wine racks, and a draft coming from somewhere it shouldn't.",
			QuestionCategory: "science",
		},
		{
			ID:               "conservatory",
			Name:             "Conservatory",
			Description:      "Glass walls and a jungle of plants that thrived on being forgotten.",
			QuestionCategory: "nature",
		},
		{
			ID:               "observatory",
			Name:             "Observatory",
			Description:      "A brass telescope aimed at a sky the dome no longer opens onto.",
			QuestionCategory: "science",
		},
	}
}

func defaultQuestions() []quest.Question {
	return []quest.Question{
		{
			ID: "hist-rosetta", Category: "history", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "The Rosetta Stone was the key to deciphering which writing system?",
			Answers:       []string{"Egyptian hieroglyphs", "Linear B", "Cuneiform", "Runes"},
			CorrectAnswer: 0,
			Explanation:   "Its same decree in Greek, Demotic, and hieroglyphs let scholars crack the hieroglyphic script.",
			Hint:          "Think of the Nile.",
		},
		{
			ID: "hist-printing", Category: "history", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "Who introduced the movable-type printing press to Europe?",
			Answers:       []string{"Leonardo da Vinci", "Johannes Gutenberg", "Isaac Newton", "Galileo Galilei"},
			CorrectAnswer: 1,
			Explanation:   "Gutenberg's press in Mainz, around 1450, made books cheap enough to spread ideas fast.",
			Hint:          "His name is on a famous Bible.",
		},
		{
			ID: "hist-wall", Category: "history", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "In which year did the Berlin Wall fall?",
			Answers:       []string{"1985", "1989", "1991", "1993"},
			CorrectAnswer: 1,
			Explanation:   "The border opened on 9 November 1989 after weeks of protests across East Germany.",
			Hint:          "Two years before the Soviet Union dissolved.",
		},
		{
			ID: "hist-magna", Category: "history", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "Which king of England sealed the Magna Carta in 1215?",
			Answers:       []string{"Richard I", "Henry II", "John", "Edward I"},
			CorrectAnswer: 2,
			Explanation:   "King John sealed it at Runnymede under pressure from his barons.",
			Hint:          "Robin Hood's least favorite monarch.",
		},
		{
			ID: "hist-byzantium", Category: "history", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "Constantinople fell to the Ottoman Empire in which year?",
			Answers:       []string{"1204", "1389", "1453", "1492"},
			CorrectAnswer: 2,
			Explanation:   "Mehmed II took the city in 1453, ending the Byzantine Empire.",
			Hint:          "39 years before Columbus sailed.",
		},
		{
			ID: "hist-hammurabi", Category: "history", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "The Code of Hammurabi comes from which ancient civilization?",
			Answers:       []string{"Babylonian", "Egyptian", "Minoan", "Persian"},
			CorrectAnswer: 0,
			Explanation:   "Hammurabi ruled Babylon around 1750 BCE; his law code survives on a basalt stele.",
			Hint:          "Between two rivers.",
		},
		{
			ID: "cult-sushi", Category: "culture", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "Which country is the birthplace of sushi as it is eaten today?",
			Answers:       []string{"China", "Thailand", "Japan", "Korea"},
			CorrectAnswer: 2,
			Explanation:   "Modern nigiri sushi took shape in Edo-period Tokyo as fast street food.",
			Hint:          "The capital used to be called Edo.",
		},
		{
			ID: "cult-guernica", Category: "culture", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "Who painted Guernica?",
			Answers:       []string{"Salvador Dalí", "Pablo Picasso", "Joan Miró", "Francisco Goya"},
			CorrectAnswer: 1,
			Explanation:   "Picasso painted it in 1937 in response to the bombing of the Basque town.",
			Hint:          "Cubism's most famous name.",
		},
		{
			ID: "cult-opera", Category: "culture", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "The opera house with the famous sail-shaped roof stands in which city?",
			Answers:       []string{"Copenhagen", "Singapore", "Vancouver", "Sydney"},
			CorrectAnswer: 3,
			Explanation:   "Jørn Utzon's Sydney Opera House opened in 1973 on Bennelong Point.",
			Hint:          "Southern hemisphere.",
		},
		{
			ID: "cult-nobel", Category: "culture", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "In which city is the Nobel Peace Prize awarded?",
			Answers:       []string{"Stockholm", "Oslo", "Copenhagen", "Geneva"},
			CorrectAnswer: 1,
			Explanation:   "Alfred Nobel's will assigns the peace prize to a Norwegian committee; the rest are awarded in Stockholm.",
			Hint:          "Not the city that awards the others.",
		},
		{
			ID: "cult-haiku", Category: "culture", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "How many syllables does a traditional haiku have in total?",
			Answers:       []string{"14", "17", "19", "21"},
			CorrectAnswer: 1,
			Explanation:   "The classic form is three lines of 5, 7, and 5 syllables.",
			Hint:          "5-7-5.",
		},
		{
			ID: "sci-water", Category: "science", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "What is the chemical formula for water?",
			Answers:       []string{"CO2", "H2O", "O2", "NaCl"},
			CorrectAnswer: 1,
			Explanation:   "Two hydrogen atoms bonded to one oxygen atom.",
			Hint:          "Two parts hydrogen.",
		},
		{
			ID: "sci-light", Category: "science", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "Roughly how long does sunlight take to reach Earth?",
			Answers:       []string{"8 seconds", "8 minutes", "8 hours", "8 days"},
			CorrectAnswer: 1,
			Explanation:   "Light covers the 150 million km from the Sun in about 8 minutes 20 seconds.",
			Hint:          "Minutes, not seconds.",
		},
		{
			ID: "sci-planet", Category: "science", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "Which planet has the most moons confirmed so far?",
			Answers:       []string{"Jupiter", "Saturn", "Uranus", "Neptune"},
			CorrectAnswer: 1,
			Explanation:   "Saturn pulled ahead of Jupiter once dozens of small irregular moons were confirmed.",
			Hint:          "It also has the rings.",
		},
		{
			ID: "sci-dna", Category: "science", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "What does DNA stand for?",
			Answers:       []string{"Deoxyribonucleic acid", "Dinucleic acid", "Deoxyribose nitrate", "Dual nucleic acid"},
			CorrectAnswer: 0,
			Explanation:   "Deoxyribonucleic acid carries the genetic instructions of living things.",
			Hint:          "The sugar in its backbone is deoxyribose.",
		},
		{
			ID: "sci-absolute", Category: "science", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "Absolute zero is approximately which Celsius temperature?",
			Answers:       []string{"-173 °C", "-223 °C", "-273 °C", "-373 °C"},
			CorrectAnswer: 2,
			Explanation:   "0 K equals −273.15 °C, the point where classical molecular motion stops.",
			Hint:          "Just below minus 273.",
		},
		{
			ID: "sci-uncertainty", Category: "science", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "Whose principle says position and momentum cannot both be known exactly?",
			Answers:       []string{"Bohr", "Schrödinger", "Heisenberg", "Planck"},
			CorrectAnswer: 2,
			Explanation:   "Heisenberg's uncertainty principle, published in 1927.",
			Hint:          "Also a Breaking Bad alias.",
		},
		{
			ID: "nat-sequoia", Category: "nature", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt:        "What is the tallest species of tree on Earth?",
			Answers:       []string{"Coast redwood", "Giant sequoia", "Douglas fir", "Mountain ash"},
			CorrectAnswer: 0,
			Explanation:   "Coast redwoods top 115 m; giant sequoias are bulkier but shorter.",
			Hint:          "It grows on the Pacific coast.",
		},
		{
			ID: "nat-octopus", Category: "nature", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt:        "How many hearts does an octopus have?",
			Answers:       []string{"One", "Two", "Three", "Four"},
			CorrectAnswer: 2,
			Explanation:   "Two branchial hearts pump blood through the gills, one systemic heart serves the body.",
			Hint:          "More than two.",
		},
		{
			ID: "nat-migration", Category: "nature", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt:        "Which bird makes the longest known annual migration?",
			Answers:       []string{"Bar-tailed godwit", "Arctic tern", "Wandering albatross", "Peregrine falcon"},
			CorrectAnswer: 1,
			Explanation:   "Arctic terns fly pole to pole and back, around 70,000 km a year.",
			Hint:          "It sees two summers every year.",
		},
	}
}

// DefaultAchievements is the standard achievement set. World packs that
// define no achievements of their own get these.
func DefaultAchievements() []quest.Achievement {
	return []quest.Achievement{
		{
			ID: "first-steps", Name: "First Steps", Icon: "👣", Points: 10,
			Description: "Answer your first question correctly.",
			Condition:   quest.Condition{Kind: quest.CondCorrectAnswers, Value: 1},
		},
		{
			ID: "scholar", Name: "Scholar", Icon: "🎓", Points: 50,
			Description: "Answer ten questions correctly.",
			Condition:   quest.Condition{Kind: quest.CondCorrectAnswers, Value: 10},
		},
		{
			ID: "quiz-veteran", Name: "Quiz Veteran", Icon: "📜", Points: 40,
			Description: "Attempt fifteen questions, right or wrong.",
			Condition:   quest.Condition{Kind: quest.CondTotalQuestions, Value: 15},
		},
		{
			ID: "explorer", Name: "Explorer", Icon: "🧭", Points: 20,
			Description: "Visit three different rooms.",
			Condition:   quest.Condition{Kind: quest.CondRoomsVisited, Value: 3},
		},
		{
			ID: "cartographer", Name: "Cartographer", Icon: "🗺️", Points: 75,
			Description: "Visit every room in the manor.",
			Condition:   quest.Condition{Kind: quest.CondAllRoomsVisited},
		},
		{
			ID: "quick-thinker", Name: "Quick Thinker", Icon: "⚡", Points: 30,
			Description: "Answer three questions in under five seconds each.",
			Condition:   quest.Condition{Kind: quest.CondQuickAnswers, Value: 3},
		},
		{
			ID: "on-a-roll", Name: "On a Roll", Icon: "🔥", Points: 40,
			Description: "Answer five questions correctly in a row.",
			Condition:   quest.Condition{Kind: quest.CondConsecutiveCorrect, Value: 5},
		},
		{
			ID: "comeback", Name: "Comeback", Icon: "💪", Points: 35,
			Description: "Recover with a correct answer after three wrong ones in a row.",
			Condition:   quest.Condition{Kind: quest.CondComebackCorrect, Value: 3},
		},
		{
			ID: "sharpshooter", Name: "Sharpshooter", Icon: "🎯", Points: 60,
			Description: "Keep your accuracy at 90% across at least ten answers.",
			Condition:   quest.Condition{Kind: quest.CondAccuracyWithMinimum, Accuracy: 0.9, MinQuestions: 10},
		},
		{
			ID: "speedrunner", Name: "Speedrunner", Icon: "⏱️", Points: 80,
			Description: "Complete the game in under five minutes.",
			Condition:   quest.Condition{Kind: quest.CondCompletionTime, Seconds: 300},
		},
		{
			ID: "cellar-dweller", Name: "Cellar Dweller", Icon: "🕯️", Points: 15,
			Description: "Find your way down to the cellar.",
			Condition:   quest.Condition{Kind: quest.CondSpecificRoomVisited, Room: "cellar"},
		},
		{
			ID: "finisher", Name: "Finisher", Icon: "🏁", Points: 100,
			Description: "Complete the game.",
			Condition:   quest.Condition{Kind: quest.CondGameCompleted},
		},
		{
			ID: "flawless", Name: "Flawless", Icon: "💎", Points: 150,
			Description: "Complete the game having explored every room.",
			Condition:   quest.Condition{Kind: quest.CondGameCompletedPerfect},
		},
	}
}
