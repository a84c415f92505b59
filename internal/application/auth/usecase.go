package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación del operador de caja.
type AuthUseCase struct {
	operatorRepo repository.OperatorRepository
	branchRepo   repository.BranchRepository
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(operatorRepo repository.OperatorRepository, branchRepo repository.BranchRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{operatorRepo: operatorRepo, branchRepo: branchRepo, jwtCfg: jwtCfg}
}

// Register crea un operador: hashea password con bcrypt y persiste.
// Devuelve ErrDuplicate si el email ya existe.
func (uc *AuthUseCase) Register(in dto.RegisterOperatorRequest) (*dto.OperatorResponse, error) {
	existing, _ := uc.operatorRepo.GetByEmail(in.Email)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound // sucursal no existe
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	op := &entity.Operator{
		ID:           uuid.New().String(),
		Nombre:       in.Nombre,
		Email:        in.Email,
		PasswordHash: string(hash),
		BranchID:     in.BranchID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.operatorRepo.Create(op); err != nil {
		return nil, err
	}
	return toOperatorResponse(op), nil
}

// Login verifica email/password, genera JWT y retorna token + operador.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := uc.operatorRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, op.ID, op.BranchID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:    token,
		Operator: *toOperatorResponse(op),
	}, nil
}

func toOperatorResponse(op *entity.Operator) *dto.OperatorResponse {
	if op == nil {
		return nil
	}
	return &dto.OperatorResponse{
		ID:        op.ID,
		Nombre:    op.Nombre,
		Email:     op.Email,
		BranchID:  op.BranchID,
		CreatedAt: op.CreatedAt,
	}
}
