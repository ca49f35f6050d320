package story

import (
	"strings"

	"storybook/internal/domain"
)

// Config carries everything that varies per story type: the four wizard
// questions (with a {name} placeholder for the character) and the thematic
// framing handed to the expansion prompt.
type Config struct {
	Name    string
	Icon    string
	Prompts [domain.PlotPointCount]string
	Theme   string
}

var storyTypes = map[domain.StoryType]Config{
	domain.StoryTypeAdventure: {
		Name: "Adventure Story",
		Icon: "🗺️",
		Prompts: [domain.PlotPointCount]string{
			"What is {name} searching for on this adventure?",
			"What dangerous obstacle must {name} overcome?",
			"Who becomes {name}'s unexpected friend along the way?",
			"What surprising discovery does {name} make at the end?",
		},
		Theme: "exploration, discovery, treasure hunting, journeys",
	},
	domain.StoryTypeHero: {
		Name: "Hero's Tale",
		Icon: "⚔️",
		Prompts: [domain.PlotPointCount]string{
			"What special power or skill does {name} discover they have?",
			"What villain or monster threatens {name}'s world?",
			"Who does {name} need to protect or save?",
			"What brave choice does {name} make in the final battle?",
		},
		Theme: "bravery, courage, fighting evil, protecting others",
	},
	domain.StoryTypeExplorer: {
		Name: "Explorer Story",
		Icon: "🔭",
		Prompts: [domain.PlotPointCount]string{
			"What mysterious place does {name} want to explore?",
			"What amazing creature or thing does {name} discover?",
			"What tool or vehicle helps {name} on the journey?",
			"What important secret does {name} uncover?",
		},
		Theme: "space, underwater, science, discovery, new worlds",
	},
	domain.StoryTypeCareer: {
		Name: "Dream Career",
		Icon: "🎯",
		Prompts: [domain.PlotPointCount]string{
			"What does {name} dream of becoming when they grow up?",
			"What is the hardest part of learning this skill?",
			"Who inspires and teaches {name} along the way?",
			"What is {name}'s proudest moment in their new career?",
		},
		Theme: "growing up, learning, hard work, achieving dreams, career journey",
	},
}

// ConfigFor resolves the configuration of a story type.
func ConfigFor(t domain.StoryType) (Config, bool) {
	cfg, ok := storyTypes[t]
	return cfg, ok
}

// Prompt returns the wizard question for a 1-based turn with the character
// name substituted.
func (c Config) Prompt(turn int, characterName string) string {
	if turn < 1 {
		turn = 1
	}
	if turn > domain.PlotPointCount {
		turn = domain.PlotPointCount
	}
	return strings.ReplaceAll(c.Prompts[turn-1], "{name}", characterName)
}
