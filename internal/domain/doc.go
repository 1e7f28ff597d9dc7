// Package domain models calm-wind persistence over a WRF model grid.
//
// # Data Source
//
// Inputs are WRF history files (wrfout_d0N_*), NetCDF containers written by the
// Weather Research and Forecasting model. Only the 10 m wind and the horizontal
// coordinates are read:
//
//	U10(Time, south_north, west_east)    eastward wind at 10 m, m s-1
//	V10(Time, south_north, west_east)    northward wind at 10 m, m s-1
//	XLAT(Time, south_north, west_east)   latitude, degree_north
//	XLONG(Time, south_north, west_east)  longitude, degrees_east
//	Times(Time, DateStrLen)              "2006-01-02_15:04:05" labels
//
// Post-processed files often drop the Time axis from XLAT/XLONG, so both
// (south_north, west_east) and (Time, south_north, west_east) coordinates are
// accepted. Output coordinates are always time-replicated.
//
// # Layout
//
// Arrays are held flat in row-major order, index = (t*Y + y)*X + x, which is
// the on-disk order of a NetCDF record variable, so no transposition happens
// between file and memory.
//
// # Calm Streaks
//
// For a threshold w the streak count acc is defined per cell by
//
//	acc[0]   = 0
//	acc[t]   = acc[t-1] + 1   if wspd[t] <  w
//	acc[t]   = 0              if wspd[t] >= w
//
// The first step has no predecessor and is always zero, whatever its speed.
// A speed equal to w is not calm.
//
// # Metadata
//
// Output variables carry the WRF attribute set (FieldType, MemoryOrder,
// description, units, stagger, coordinates). coordinates is "XLONG XLAT" on
// every gridded variable including XLAT and XLONG themselves; tools such as
// ncview and xarray use it to pair the fields as a geographic grid.
package domain
