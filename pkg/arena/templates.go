package arena

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
)

// RobotTemplate определяет шаблон для создания робота
type RobotTemplate struct {
	Role  enums.Role
	MaxHP int
	Ammo  int     // Стартовый боезапас
	Speed float64 // м/с
	Large bool    // 42 мм снаряды
	Range float64 // Дальность автоматического наведения (только часовой), м
}

// --- РОБОТЫ ---

var Hero = RobotTemplate{
	Role:  enums.RoleHero,
	MaxHP: 200,
	Ammo:  10,
	Speed: 2.5,
	Large: true,
}

var Engineer = RobotTemplate{
	Role:  enums.RoleEngineer,
	MaxHP: 250,
	Ammo:  0,
	Speed: 3.0,
}

var Infantry = RobotTemplate{
	Role:  enums.RoleInfantry,
	MaxHP: 200,
	Ammo:  100,
	Speed: 3.0,
}

var Sentinel = RobotTemplate{
	Role:  enums.RoleSentinel,
	MaxHP: 400,
	Ammo:  300,
	Speed: 1.5,
	Range: 8,
}

// RobotTemplates - реестр шаблонов по роли
var RobotTemplates = map[enums.Role]RobotTemplate{
	enums.RoleHero:     Hero,
	enums.RoleEngineer: Engineer,
	enums.RoleInfantry: Infantry,
	enums.RoleSentinel: Sentinel,
}

// --- СТРОЕНИЯ ---

const (
	OutpostHP = 1500
	BaseHP    = 5000
)

// Плиты брони строений (у роботов domain.ArmorPlates)
const (
	OutpostPlates = 1
	BasePlates    = 2
)
