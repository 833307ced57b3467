package catalog

// DefaultSeed is the starter catalog loaded by POST /memes/seed.
func DefaultSeed() []MemeInput {
	return []MemeInput{
		{
			Title:       "Distracted Boyfriend",
			Description: "Man looking at another woman while his girlfriend looks disapproving",
			MediaURL:    "https://cdn.poehali.dev/projects/bec87bec-1508-47d4-b95c-e4f127d771cb/files/85aee34e-dc44-4f84-bd26-221b00123fbb.jpg",
			MediaType:   "image",
			Category:    "popular",
			Tags:        []string{"relationship", "choice", "distraction"},
			SourceURL:   "https://knowyourmeme.com/memes/distracted-boyfriend",
		},
		{
			Title:       "Woman Yelling at Cat",
			Description: "Angry woman pointing at confused cat at dinner table",
			MediaURL:    "https://cdn.poehali.dev/projects/bec87bec-1508-47d4-b95c-e4f127d771cb/files/d33b31a5-bd89-43a3-83ee-6f712c477653.jpg",
			MediaType:   "image",
			Category:    "new",
			Tags:        []string{"argument", "confusion", "cat"},
			SourceURL:   "https://knowyourmeme.com/memes/woman-yelling-at-a-cat",
		},
		{
			Title:       "Success Kid",
			Description: "Baby making fist pump gesture on beach",
			MediaURL:    "https://cdn.poehali.dev/projects/bec87bec-1508-47d4-b95c-e4f127d771cb/files/83d2d203-0400-4cb7-b449-47b7655bee4e.jpg",
			MediaType:   "image",
			Category:    "old",
			Tags:        []string{"success", "victory", "baby"},
			SourceURL:   "https://knowyourmeme.com/memes/success-kid",
		},
		{
			Title:       "Drake Hotline Bling",
			Description: "Drake rejecting something vs approving something else",
			MediaURL:    "https://i.imgflip.com/30b1gx.jpg",
			MediaType:   "image",
			Category:    "popular",
			Tags:        []string{"preference", "choice", "approval"},
			SourceURL:   "https://knowyourmeme.com/memes/drakeposting",
		},
		{
			Title:       "Surprised Pikachu",
			Description: "Pikachu with shocked expression",
			MediaURL:    "https://i.imgflip.com/1bil.jpg",
			MediaType:   "image",
			Category:    "popular",
			Tags:        []string{"shock", "surprise", "pokemon"},
			SourceURL:   "https://knowyourmeme.com/memes/surprised-pikachu",
		},
		{
			Title:       "This Is Fine",
			Description: "Dog sitting in room on fire saying everything is fine",
			MediaURL:    "https://i.imgflip.com/wxica.jpg",
			MediaType:   "image",
			Category:    "popular",
			Tags:        []string{"chaos", "denial", "dog"},
			SourceURL:   "https://knowyourmeme.com/memes/this-is-fine",
		},
		{
			Title:       "Expanding Brain",
			Description: "Brain getting bigger with increasingly complex ideas",
			MediaURL:    "https://i.imgflip.com/1jwhww.jpg",
			MediaType:   "image",
			Category:    "new",
			Tags:        []string{"intelligence", "progression", "brain"},
			SourceURL:   "https://knowyourmeme.com/memes/expanding-brain",
		},
		{
			Title:       "Hide the Pain Harold",
			Description: "Older man with forced smile hiding internal pain",
			MediaURL:    "https://i.imgflip.com/gk5el.jpg",
			MediaType:   "image",
			Category:    "old",
			Tags:        []string{"pain", "smile", "hiding"},
			SourceURL:   "https://knowyourmeme.com/memes/hide-the-pain-harold",
		},
		{
			Title:       "Roll Safe Think About It",
			Description: "Man pointing at his head with knowing look",
			MediaURL:    "https://i.imgflip.com/1h7in3.jpg",
			MediaType:   "image",
			Category:    "popular",
			Tags:        []string{"smart", "thinking", "logic"},
			SourceURL:   "https://knowyourmeme.com/memes/roll-safe",
		},
		{
			Title:       "One Does Not Simply",
			Description: "Boromir saying you cannot simply do something",
			MediaURL:    "https://i.imgflip.com/1bij.jpg",
			MediaType:   "image",
			Category:    "old",
			Tags:        []string{"lotr", "impossible", "simply"},
			SourceURL:   "https://knowyourmeme.com/memes/one-does-not-simply-walk-into-mordor",
		},
	}
}
