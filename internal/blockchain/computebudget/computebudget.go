// internal/blockchain/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	instructionSetComputeUnitLimit uint8 = 2
	instructionSetComputeUnitPrice uint8 = 3
)

// Предопределенные профили
const (
	DefaultUnits uint32 = 200_000
	// ProgrammableUnits достаточно для Transfer pNFT с проверкой rule set.
	ProgrammableUnits uint32 = 400_000
)

// Config содержит конфигурацию бюджета транзакции. Нулевое значение - без инструкций.
type Config struct {
	Units         uint32
	MicroLamports uint64
}

// IsZero сообщает, что бюджет не задан.
func (c Config) IsZero() bool {
	return c.Units == 0 && c.MicroLamports == 0
}

// Instructions создает инструкции для настройки бюджета
func (c Config) Instructions() ([]solana.Instruction, error) {
	var instructions []solana.Instruction
	if c.Units > 0 {
		ix, err := build(instructionSetComputeUnitLimit, c.Units)
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}
	if c.MicroLamports > 0 {
		ix, err := build(instructionSetComputeUnitPrice, c.MicroLamports)
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}
	return instructions, nil
}

func build(discriminator uint8, value interface{}) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, discriminator); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, buf.Bytes()), nil
}
