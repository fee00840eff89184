package storybook

import "time"

// PageRow is the SQL form of StoryRecord. ID preserves insertion order.
type PageRow struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID          string    `gorm:"index;not null;column:book_id" json:"book_id"`
	PageNumber      int       `gorm:"not null;column:page_number" json:"page_number"`
	PageText        string    `gorm:"type:text;column:page_text" json:"page_text"`
	IllustrationURL string    `gorm:"type:text;column:illustration_url" json:"illustration_url"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PageRow) TableName() string { return "ehon_pages" }

func (r PageRow) Record() StoryRecord {
	return StoryRecord{
		BookID:          BookID(r.BookID),
		PageNumber:      r.PageNumber,
		PageText:        r.PageText,
		IllustrationURL: r.IllustrationURL,
	}
}

func PageRowFromRecord(rec StoryRecord) PageRow {
	return PageRow{
		BookID:          rec.BookID.String(),
		PageNumber:      rec.PageNumber,
		PageText:        rec.PageText,
		IllustrationURL: rec.IllustrationURL,
	}
}

type PremiseRow struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MainCharacter     string    `gorm:"column:main_character" json:"main_character"`
	MainCharacterName string    `gorm:"column:main_character_name" json:"main_character_name"`
	Location          string    `gorm:"column:location" json:"location"`
	Theme             string    `gorm:"column:theme" json:"theme"`
	SubCharacterA     string    `gorm:"column:sub_character_a" json:"sub_character_a"`
	SubCharacterB     string    `gorm:"column:sub_character_b" json:"sub_character_b"`
	Storyline         string    `gorm:"type:text;column:storyline" json:"storyline"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PremiseRow) TableName() string { return "ehon_premises" }

func (r PremiseRow) Premise() Premise {
	return Premise{StorySeed{
		MainCharacter:     r.MainCharacter,
		MainCharacterName: r.MainCharacterName,
		Location:          r.Location,
		Theme:             r.Theme,
		SubCharacterA:     r.SubCharacterA,
		SubCharacterB:     r.SubCharacterB,
		Storyline:         r.Storyline,
	}}
}

func PremiseRowFrom(p Premise) PremiseRow {
	return PremiseRow{
		MainCharacter:     p.MainCharacter,
		MainCharacterName: p.MainCharacterName,
		Location:          p.Location,
		Theme:             p.Theme,
		SubCharacterA:     p.SubCharacterA,
		SubCharacterB:     p.SubCharacterB,
		Storyline:         p.Storyline,
	}
}
