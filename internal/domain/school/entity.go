package school

// School is the only persisted entity. Rows are created once and never
// updated or deleted by this service.
type School struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"column:name;type:text;not null" json:"name"`
	Address string `gorm:"column:address;type:text;not null" json:"address"`
	City    string `gorm:"column:city;type:text;not null" json:"city"`
	State   string `gorm:"column:state;type:text;not null" json:"state"`
	Contact string `gorm:"column:contact;type:text;not null" json:"contact"`
	Image   string `gorm:"column:image;type:text;not null" json:"image"` // relative to the image route, "" when none
	EmailID string `gorm:"column:email_id;type:text;not null" json:"email_id"`
}

func (School) TableName() string { return "schools" }
