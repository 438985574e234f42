// internal/storage/models/transaction.go
package models

// Transaction - запись журнала об одной отправке (все попытки).
type Transaction struct {
	BaseModel
	CorrelationID string `gorm:"uniqueIndex;not null;type:varchar(36)" json:"correlation_id"`
	Signature     string `gorm:"index;type:varchar(88)" json:"signature,omitempty"`
	WalletAddress string `gorm:"index;not null;type:varchar(44)" json:"wallet"`
	Label         string `gorm:"not null;type:varchar(100)" json:"label"`
	Status        string `gorm:"not null;type:varchar(20)" json:"status"`
	Attempts      int    `gorm:"not null" json:"attempts"`
	ErrorMessage  string `gorm:"type:text" json:"error,omitempty"`
	// ExecutionTime в секундах.
	ExecutionTime float64 `gorm:"type:decimal(10,3)" json:"execution_time"`
}
