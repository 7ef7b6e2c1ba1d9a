package view

var FlagSteps = flagSteps
