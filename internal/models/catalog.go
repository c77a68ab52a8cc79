package models

// Tag is reference data used to classify recipes. Slug is the external
// filter key.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7;not null" json:"color"`
	Slug  string `gorm:"size:200;not null;uniqueIndex:idx_tags_slug" json:"slug"`
}

// Ingredient is unique per (name, measurement unit); the same name may exist
// with a different unit.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit,priority:1" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit,priority:2" json:"measurement_unit"`
}
